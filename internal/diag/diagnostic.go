package diag

import "fmt"

// Note attaches secondary context to a diagnostic. Each note should add new
// information ("first declared here"), not repeat the message.
type Note struct {
	Key string
	Msg string
}

// Diagnostic is one finding. Path is the manifest file it belongs to; Key is
// the TOML key path that triggered it, e.g. "global[2].name" (empty when the
// finding concerns the file as a whole).
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Path     string
	Key      string
	Notes    []Note
}

// WithNote returns a copy of the diagnostic with an extra note appended.
func (d Diagnostic) WithNote(key, msg string) Diagnostic {
	d.Notes = append(d.Notes[:len(d.Notes):len(d.Notes)], Note{Key: key, Msg: msg})
	return d
}

func Errorf(code Code, path, key, format string, args ...any) Diagnostic {
	return newDiag(SevError, code, path, key, format, args...)
}

func Warningf(code Code, path, key, format string, args ...any) Diagnostic {
	return newDiag(SevWarning, code, path, key, format, args...)
}

func Infof(code Code, path, key, format string, args ...any) Diagnostic {
	return newDiag(SevInfo, code, path, key, format, args...)
}

func newDiag(sev Severity, code Code, path, key, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Key:      key,
	}
}

package models

// Report is a configured report-generation script, executed as
// `<interpreter> <script>` from the project directory.
type Report struct {
	Name   string `json:"name" yaml:"name"`     // Descriptive name (e.g., "movimientos")
	Script string `json:"script" yaml:"script"` // Script path, relative to the project directory unless absolute
}

// Package types defines the result types reconstruct reports.
package types

// Position represents a location in a source file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range represents a span in a source file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Migration is one service lookup replaced by an injected property.
type Migration struct {
	Class    string `json:"class"`
	Method   string `json:"method"`
	Key      string `json:"key"`
	Property string `json:"property"`
	Type     string `json:"type"`
}

// FileResult reports what happened to one file.
type FileResult struct {
	File       string      `json:"file"`
	Changed    bool        `json:"changed"`
	Written    bool        `json:"written"`
	Sites      int         `json:"sites"`
	Skipped    int         `json:"skipped"`
	Migrations []Migration `json:"migrations,omitempty"`
	Diff       string      `json:"diff,omitempty"`
}

// LocatorSite is a service lookup found in source.
type LocatorSite struct {
	File   string `json:"file"`
	Class  string `json:"class,omitempty"`
	Method string `json:"method,omitempty"`
	Key    string `json:"key"`
	Text   string `json:"text"`
	Range  Range  `json:"range"`
}

// ServiceInfo describes a service of the booted container.
type ServiceInfo struct {
	Key      string `json:"key"`
	Type     string `json:"type,omitempty"`
	Property string `json:"property,omitempty"` // the member name an injection would use.
	Error    string `json:"error,omitempty"`
}

// FileJob represents a file to be processed.
type FileJob struct {
	AbsPath     string
	DisplayPath string
	Language    string
}

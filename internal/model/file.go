package model

// File is an uploaded file, usually an avatar. Path is the stored name.
type File struct {
	Base
	Name string `db:"name" json:"name"`
	Path string `db:"path" json:"path"`
	URL  string `db:"-" json:"url"`
}

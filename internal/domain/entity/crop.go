package entity

// FaceCrop is an encoded face region handed to the recognition models.
type FaceCrop struct {
	ID      string
	Role    Role
	Data    []byte // JPEG
	Width   int
	Height  int
	Aligned bool
	// Path is set by stores that keep the crop on disk.
	Path string
}

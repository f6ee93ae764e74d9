package library

// TagCount is a keyword with its photo and video counts from the library.
type TagCount struct {
	Name   string
	Photos int
	Videos int
}

// Total returns the combined photo and video count.
func (t TagCount) Total() int {
	return t.Photos + t.Videos
}

// Album is a user album as the library reports it. The identifier is the
// album UUID; PhotoCount is the library's own cached membership count.
type Album struct {
	ID         string
	Title      string
	PhotoCount int
}

// Person is a recognized subject. Read-only from this application's
// perspective; FaceCount is the number of confirmed face detections.
type Person struct {
	ID        string
	Name      string
	FaceCount int
}

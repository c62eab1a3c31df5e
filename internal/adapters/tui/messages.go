package tui

// MsgVertexStarted is sent when a marker generation begins.
type MsgVertexStarted struct {
	ID   string
	Name string
}

// MsgVertexCached is sent when a generation is satisfied from the cache.
type MsgVertexCached struct {
	ID string
}

// MsgVertexLog is sent when a generation logs a warning or an error.
type MsgVertexLog struct {
	ID   string
	Text string
}

// MsgVertexCompleted is sent when a generation finishes.
type MsgVertexCompleted struct {
	ID  string
	Err error
}

// MsgStreamEnded is sent when the event stream has been closed.
type MsgStreamEnded struct{}

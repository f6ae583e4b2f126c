package messages

// ResultMsg carries the result of one console command.
type ResultMsg struct {
	Command string
	Result  string
}

// ErrorMsg carries a failed console command.
type ErrorMsg struct {
	Command string
	Err     error
}

type SessionEndedMsg struct{}

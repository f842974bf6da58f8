package protocol

// LoginReply is the parsed flat key/value login response. A populated UID
// means success; otherwise Message carries the server's failure text for
// classification by the session layer.
type LoginReply struct {
	UID      string
	Username string
	Message  string
}

// ParseLogin decodes the flat XML login response.
func ParseLogin(body []byte) (LoginReply, error) {
	if IsDuplicateLogin(body) {
		return LoginReply{}, ErrDuplicateLogin
	}
	el, err := decodeFlat(body)
	if err != nil {
		return LoginReply{}, err
	}
	return LoginReply{
		UID:      el.probe("uid", "sid"),
		Username: el.probe("username", "user"),
		Message:  el.probe("msg", "message", "code_message"),
	}, nil
}

package bridge

// channel mirrors the engine's error slot after every call.
type channel struct {
	code   int
	msg    string
	serial int64
}

// fail records a failure detected on the caller side, where the engine
// slot is never consulted.
func (ch *channel) fail(err *Error) error {
	ch.code, ch.msg = err.Code, err.Message
	return err
}

// LastError returns the code of the most recent engine error, or 0.
func (c *Client) LastError() int { return c.ch.code }

// LastErrorString returns the message of the most recent engine error.
func (c *Client) LastErrorString() string { return c.ch.msg }

// ClearError resets the channel and the engine's own error slot.
func (c *Client) ClearError() {
	c.ch.code, c.ch.msg = CodeNone, ""
	if c.gw != nil {
		c.gw.clear()
	}
}

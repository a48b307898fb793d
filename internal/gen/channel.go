package gen

// Channel is the bidirectional message boundary between the scheduler and
// the generation worker. Both directions are buffered; the scheduler's frame
// budget bounds how many requests enter per tick, and the coordinator drains
// responses every frame, so neither side stalls in steady state.
type Channel struct {
	requests  chan Request
	responses chan Response
}

func NewChannel(requestBuffer, responseBuffer int) *Channel {
	if requestBuffer <= 0 {
		requestBuffer = 256
	}
	if responseBuffer <= 0 {
		responseBuffer = 256
	}
	return &Channel{
		requests:  make(chan Request, requestBuffer),
		responses: make(chan Response, responseBuffer),
	}
}

// Send queues a request for the worker.
func (c *Channel) Send(req Request) {
	c.requests <- req
}

// Requests exposes the worker-side receive end.
func (c *Channel) Requests() <-chan Request {
	return c.requests
}

// Respond queues a response for the scheduler.
func (c *Channel) Respond(resp Response) {
	c.responses <- resp
}

// Responses exposes the scheduler-side receive end.
func (c *Channel) Responses() <-chan Response {
	return c.responses
}

package packet

type StatusRequest struct{}

func (*StatusRequest) Kind() Kind { return KindStatusRequest }
func (*StatusRequest) sealed()    {}

// StatusResponse carries the server list JSON document.
type StatusResponse struct {
	JSON string
}

func (*StatusResponse) Kind() Kind { return KindStatusResponse }
func (*StatusResponse) sealed()    {}

type StatusPing struct {
	Payload int64
}

func (*StatusPing) Kind() Kind { return KindStatusPing }
func (*StatusPing) sealed()    {}

type StatusPong struct {
	Payload int64
}

func (*StatusPong) Kind() Kind { return KindStatusPong }
func (*StatusPong) sealed()    {}

package nats

import (
	"github.com/nats-io/nats.go/micro"

	"github.com/flarexio/docqa"
)

func AddEndpoints(group micro.Group, endpoints docqa.EndpointSet) {
	group.AddEndpoint("ask", AskHandler(endpoints.Ask))
	group.AddEndpoint("search", SearchHandler(endpoints.Search))
}

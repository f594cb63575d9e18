package transport_test

import (
	"testing"

	"github.com/joshuafuller/dnsresolve/internal/transport"
)

func TestTransportInterface_HasRequiredMethods(_ *testing.T) {
	var _ transport.Transport = (*transport.MockTransport)(nil)
	var _ transport.Transport = (*transport.UDPTransport)(nil)
	var _ transport.Transport = (*transport.TCPTransport)(nil)
}

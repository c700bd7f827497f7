// SPDX-License-Identifier: GPL-3.0-or-later

package dnsmetrics

import (
	"context"

	netvisor "github.com/netvisor/agent"
	"github.com/netvisor/agent/dns"
)

// OnlyRcode returns a [netvisor.Func] that accepts only reply layers
// carrying the given rcode — a query layer (QR=false) always passes,
// since the filter only scopes replies. Composed into a Handler via
// [NewHandler]'s opts, matching the teacher's composable-primitive idiom
// instead of a one-off bool field.
func OnlyRcode(rcode uint8) netvisor.Func[*dns.Layer, bool] {
	return netvisor.FuncAdapter[*dns.Layer, bool](func(_ context.Context, l *dns.Layer) (bool, error) {
		if !l.QR() {
			return true, nil
		}
		return l.Rcode() == rcode, nil
	})
}

// allowAll is the default filter when a Handler is built without one.
func allowAll() netvisor.Func[*dns.Layer, bool] {
	return netvisor.FuncAdapter[*dns.Layer, bool](func(_ context.Context, _ *dns.Layer) (bool, error) {
		return true, nil
	})
}

// Package appliance is a JSON client for the network-emulation appliance's
// HTTP API.
//
// The layout engine needs exactly two capabilities from the appliance:
//
//   - [Client.List] reads an entity listing (routers, connections) keyed by
//     entity id, preserving the order the appliance reports.
//   - [Client.Post] issues a mutating or refresh-triggering command and
//     reports whether it succeeded.
//
// # Listing Envelope
//
// Listings wrap their items under an element name ("virtual-routers",
// "router-connections"). The appliance uses three shapes for that element
// depending on how many objects exist, and List accepts all of them:
//
//	{"virtual-routers": [{"1.1.1.65535.vr1": {...}}, {"1.1.1.65535.vr2": {...}}]}
//	{"virtual-routers": {"eid": "1.1.1.65535.vr1", ...}}
//	{"virtual-routers": {"1.1.1.65535.vr1": {...}, "1.1.1.65535.vr2": {...}}}
//
// # Retries
//
// Listings are retried on transport failures and 5xx responses using
// [httputil.Retry]. Commands posted with Post are never retried.
package appliance

// Package topology holds typed router and connection records decoded from
// appliance listings, and the per-resource [Cache] that mirrors them.
//
// The appliance is authoritative. The cache is a read-through mirror that is
// populated on first use, replaced wholesale on refresh and never patched
// incrementally, so objects removed remotely disappear at the next refresh.
package topology

// Package firewall implements the balancer's admission filter: a deny-set of
// source addresses whose requests are rejected on arrival.
package firewall

import "sort"

// DefaultBlocked is the pre-configured deny-set every balancer starts with.
var DefaultBlocked = []string{"192.168.1.100", "10.0.0.23"} //nolint:gochecknoglobals // seed list

// Filter is a set of blocked source addresses. It is not safe for concurrent
// use; the balancer owning it is its only mutator.
type Filter struct {
	blocked map[string]struct{}
}

// New returns a filter pre-loaded with ips.
func New(ips ...string) *Filter {
	f := &Filter{blocked: make(map[string]struct{}, len(ips))}
	for _, ip := range ips {
		f.Block(ip)
	}
	return f
}

// IsBlocked reports whether ip is denied.
func (f *Filter) IsBlocked(ip string) bool {
	_, ok := f.blocked[ip]
	return ok
}

// Block adds ip to the deny-set. Blocking twice is a no-op.
func (f *Filter) Block(ip string) {
	f.blocked[ip] = struct{}{}
}

// Unblock removes ip. Unblocking an absent address is a no-op.
func (f *Filter) Unblock(ip string) {
	delete(f.blocked, ip)
}

// Replace swaps the entire deny-set for ips.
func (f *Filter) Replace(ips []string) {
	f.blocked = make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		f.Block(ip)
	}
}

// Len returns the number of blocked addresses.
func (f *Filter) Len() int {
	return len(f.blocked)
}

// Blocked returns the deny-set sorted lexically.
func (f *Filter) Blocked() []string {
	out := make([]string, 0, len(f.blocked))
	for ip := range f.blocked {
		out = append(out, ip)
	}
	sort.Strings(out)
	return out
}

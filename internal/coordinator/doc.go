// Package coordinator merges tweaks from several sources. Every source is
// registered with an explicit Priority. A lookup returns the value from the
// highest-priority source that defines the identifier, and a write goes to
// the first mutable source in that order.
package coordinator

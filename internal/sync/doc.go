// Package sync is the reconciliation engine. One pass fetches the roster
// feed, classifies each course as new or existing by short name, creates the
// new ones, enrols participants that are not enrolled yet and collects the
// participants that do not match any user account.
//
// Re-running a pass over the same feed creates nothing new: courses created
// by an earlier pass classify as existing, and enrolled participants are
// skipped before any user lookup.
package sync

// Package transport owns every HTTP exchange with the collaborators: the
// webhook push, the latest-message fetch and the two media upload
// endpoints. It encodes the run's transport policy in one place:
//
//   - A read timeout on the webhook push counts as acceptance (the
//     receiver is assumed to have taken the payload before timing out).
//   - Any transport failure on the mandatory latest-message read inside
//     Deliver degrades to a synthetic 200 outcome so a run is never
//     blocked by transport noise.
//
// An optional client-side rate limit (golang.org/x/time/rate) paces
// webhook pushes; it is disabled by default.
package transport

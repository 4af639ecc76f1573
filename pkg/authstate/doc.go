// Package authstate implements the client-side session lifecycle for the
// practice application: who is signed in, which practice (tenant) they act
// for, and whether that answer is still being resolved.
//
// A Controller coordinates three asynchronous producers over one canonical
// Store:
//
//   - Bootstrap runs once at startup. It restores the last resolved
//     (identity, profile) pair from the session cache when possible,
//     otherwise either resolves immediately (fast boot) or races an
//     authoritative session check against a timeout (bounded check), then
//     enriches the identity with its profile record.
//   - SignIn is the explicit credential exchange. Concurrent sign-ins are
//     rejected, and the passive listener is suppressed for the whole flow so
//     the provider's own sign-in event cannot race the explicit commit.
//   - The event listener reconciles external session changes (token refresh,
//     sign-out elsewhere) whenever no explicit flow is running.
//
// Every provider call is raced against a configured timeout; a fired timeout
// always produces a terminal Loading=false snapshot, and late results are
// discarded through a generation counter so they can never clobber newer
// state. Consumers read snapshots with Current and follow transitions with
// Subscribe; a Change carries an optional navigation hint (home after
// sign-in, the sign-in screen after sign-out).
//
// # Usage
//
//	ctrl := authstate.New(provider, profiles,
//	    authstate.WithBootPolicy(authstate.BootBoundedCheck),
//	)
//	defer ctrl.Close()
//
//	if err := ctrl.Bootstrap(ctx); err != nil {
//	    // only fails when called twice
//	}
//
//	if err := ctrl.SignIn(ctx, email, password); err != nil {
//	    // typed failure for the sign-in form
//	}
//
//	st := ctrl.Current()
//	if st.Phase() == authstate.PhaseAuthenticated {
//	    // st.TenantID scopes every query
//	}
package authstate

/*
Package wizard chains form steps into a session-backed multi-step flow.

A Definition lists the steps and their fields. For every request, New resolves
the current step from the query string (?step=N, 1-based) and loads the data
saved so far from the request session. The Form view carries three triggers:

  - previous: shown on every step but the first, redirects one step back.
  - next: shown before the last step, validates and saves the step, then
    redirects forward.
  - finish: shown on the last step, validates, saves and concludes.

A failed validation returns a domain.Namespace with the bound form, the wizard
and the errors by field, and leaves the session untouched.

Saved data is kept either per step (FlatPayload) or in a single struct
(ModelPayload).
*/
package wizard

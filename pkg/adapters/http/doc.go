/*
Package http serves form views over HTTP with chi.

GET renders the view namespace as JSON. POST dispatches the action named by the
form.trigger field and maps the outcome:

  - domain.Redirect: the redirect status (303 by default) and Location.
  - domain.Namespace: JSON, 422 when it carries validation errors.
  - dispatch errors: 400 (no action), 404 (unknown action or step), 403 (not allowed).

Clients are identified by a UUID session cookie backed by a session.Manager.
*/
package http

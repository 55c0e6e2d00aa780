/*
Package form implements the action dispatcher of a form view.

A form view declares named triggers ("save", "cancel", ...) in a trigger table.
On POST the host builds a domain.Request and calls ProcessAction, which reads
the routing field (domain.ActionField, "form.trigger" by default), removes it
from the payload, checks the trigger's condition and runs its handler.

Rejections are reported with sentinel errors so the transport can map them:

  - domain.ErrNoActionSubmitted: the request named no action (400).
  - domain.ErrActionNotFound: the action is not in the table (404).
  - domain.ErrActionNotAllowed: the condition rejected the request (403).
*/
package form

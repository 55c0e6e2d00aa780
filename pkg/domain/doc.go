/*
Package domain contains the core models of stepform.

It defines the trigger descriptors a view exposes, the frozen trigger table,
the transport-neutral request and session contracts, and the wizard payload
types. This package is kept pure and free of I/O so it can be shared by every
adapter.

# Key Entities

  - Trigger: a named, ordered, conditionally visible action bound to a handler.
  - Triggers: the immutable, ordered id->Trigger table of a view type.
  - Request / Session: what a handler sees of the inbound request.
  - WizardData / Step: per-step payloads persisted in the session.
  - Namespace / Redirect: the usual handler results.
*/
package domain

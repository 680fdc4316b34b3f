// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Authentication
//
//   - Hasher: one-way password digests (internal/auth/password.go)
//   - Validator: token pair checks used by the Gate (internal/auth/gate.go)
//   - UserStore: account persistence behind auth.Service (internal/auth/service.go)
//   - AuditLogger: login/logout/register trail (internal/auth/handlers.go)
//
// ## Data Access Interfaces
//
// Every method takes the authenticated user's id, so handlers can never
// reach another user's rows except through a share.
//
//   - SnipStore, CollectionStore, ContactStore (internal/http/stores.go)
//   - AccountService: settings and account deletion (internal/http/stores.go)
//
// ## Audit Interfaces
//
//   - ActivityRecorder: resource controllers report changes (internal/http/stores.go)
//   - ActivityReader: paginated trail for GET /api/activity (internal/http/stores.go)
//
// ## Background Maintenance
//
//   - AuditEventCleaner, OrphanSharesCleaner: task processors (internal/tasks)
//   - Enqueuer: the cron scheduler hands tasks to backlite (internal/scheduler)
//
// # Adding a Protected Resource
//
//  1. Add the entity under internal/entities and list it in database.Models.
//  2. Write a repository in internal/database/<name> whose methods take userID.
//  3. Declare the store interface in internal/http/stores.go.
//  4. Register the routes on the /api group in router.go so the Gate runs first.
//  5. Add a compile-time check to checks.go.
//
// The Gate is attached to the group, not to individual routes; a route added
// outside the group is public.
package interfaces

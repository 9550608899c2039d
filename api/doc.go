// Package api provides the HTTP REST API of the Ringlight puzzle server.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              - Create a session ({"config_id": "classic"}; empty body uses the default level)
//   - GET    /api/sessions              - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/unified      - Several sessions in one payload (?sessionIds=a,b or ?configName=classic)
//   - GET    /api/sessions/{id}         - Session details with state and level
//   - DELETE /api/sessions/{id}         - Delete a session
//
// Game Operations:
//   - GET  /api/sessions/{id}/state                - Current board, routes and lit gates
//   - POST /api/sessions/{id}/move                 - One command ({"command": "left", "reset": false})
//   - POST /api/sessions/{id}/bulk-move            - Several commands ({"moves": ["down", "left"]})
//   - POST /api/sessions/{id}/reset                - Restore the starting positions
//   - GET  /api/sessions/{id}/history              - Paginated history (?page=1&limit=20&order=desc)
//   - GET  /api/sessions/{id}/slots/{ring}/{slot}  - Describe one cell; ring 3 addresses the goal gates
//
// Levels:
//   - GET /api/configs         - List levels
//   - GET /api/configs/{name}  - Level definition
//
// Other:
//   - GET /api/health  - Liveness probe
//   - GET /ws?session= - WebSocket upgrade for live updates
//
// Commands are left/ccw, right/cw, up/out and down/in. Bulk moves stop at
// the first failed command or once every gate is lit. The response carries
// stop_reason_code (invalid_command, ring_limit or victory), a per-step
// trace, start/end offsets and start/end lit gates.
//
// Errors are returned as JSON:
//
//	{"error": "session not found"}
//
// Unknown sessions and levels map to 404, malformed bodies and empty command
// lists to 400.
package api

// Package fixtures provides test fixtures for MutedVoice tests.
package fixtures

import "fmt"

// SampleConfig returns a config file body that talks to a fake Webex at
// baseURL and relays into room g1.
func SampleConfig(baseURL string) string {
	return fmt.Sprintf(`{
  "webex": {
    "token": "test-token",
    "targetRoomId": "g1",
    "baseUrl": %q,
    "connectTimeout": "2s"
  },
  "server": {"host": "127.0.0.1", "port": 3456},
  "logging": {"level": "debug"}
}`, baseURL)
}

// MessageCreated is a messages/created delivery as Webex sends it.
func MessageCreated(messageID, roomID, personID string) string {
	return fmt.Sprintf(`{
  "id": "Y2lzY29zcGFyazovL3VzL1dFQkhPT0sv",
  "name": "mutedvoice",
  "targetUrl": "https://relay.example.com/webex-webhook",
  "resource": "messages",
  "event": "created",
  "orgId": "org1",
  "createdBy": "bot-id",
  "appId": "app1",
  "ownedBy": "creator",
  "status": "active",
  "actorId": %[3]q,
  "data": {
    "id": %[1]q,
    "roomId": %[2]q,
    "roomType": "direct",
    "personId": %[3]q,
    "personEmail": "someone@example.com",
    "created": "2026-10-18T09:00:00.000Z"
  }
}`, messageID, roomID, personID)
}

// MembershipCreated is a delivery for a resource the relay ignores.
const MembershipCreated = `{
  "resource": "memberships",
  "event": "created",
  "data": {"id": "mem1", "roomId": "g1", "personId": "u9"}
}`

// Package ws implements the realtime notification channel. A single Hub
// fans task events out to every authenticated websocket client; clients
// authenticate by sending an access token in their first frame after the
// upgrade, since browser websocket APIs cannot attach Authorization headers.
package ws

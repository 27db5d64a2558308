// File: client/identity.go
package client

// RestartResult describes what the client should do after a CONNECT
// join response arrives.
type RestartResult struct {
	Restarted    bool
	OldPlayerID  string
	NewPlayerID  string
}

// DetectServerRestart implements scenario S4 of the wire spec: a
// client that supplied a previously observed playerId but gets back
// isReconnection=false was talking to a fresh server process that has
// never heard of that id. onServerRestart fires and the old predicted
// position is forgotten; the caller reseeds Predictor from the new
// join response's placement instead.
func DetectServerRestart(requestedPlayerID, responsePlayerID string, isReconnection bool) RestartResult {
	if requestedPlayerID != "" && !isReconnection {
		return RestartResult{Restarted: true, OldPlayerID: requestedPlayerID, NewPlayerID: responsePlayerID}
	}
	return RestartResult{}
}

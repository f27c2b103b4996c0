package server

import (
	"net/http"

	"github.com/shiyoungwoo/Resume-assistant/internal/ledger"
	"github.com/shiyoungwoo/Resume-assistant/internal/media"
	"github.com/shiyoungwoo/Resume-assistant/internal/types"
)

// StartRequest is the body of POST /session/start and /session/unlock.
// PermissionGranted carries the camera and microphone decision made by the client.
type StartRequest struct {
	Company           string `json:"company"`
	Role              string `json:"role"`
	PermissionGranted bool   `json:"permission_granted"`
}

// TurnRequest is the body of POST /session/turn
type TurnRequest struct {
	Text string `json:"text" validate:"required"`
}

// PointsResponse describes the points balance and free attempt usage
type PointsResponse struct {
	Balance      int `json:"balance"`
	Earned       int `json:"earned,omitempty"`
	Usage        int `json:"usage"`
	FreeAttempts int `json:"free_attempts"`
}

func (s *Server) permission(granted bool) media.Acquirer {
	if granted {
		return s.devices.WithPermission(media.Grant)
	}
	return s.devices.WithPermission(media.Deny)
}

// handleGetSession returns the mock interview snapshot
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.station.Session.Snapshot(r.Context()))
}

// handleStartSession starts a free mock interview
func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := s.station.Session.StartWith(r.Context(), req.Company, req.Role, s.permission(req.PermissionGranted))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleUnlockSession pays for an extra attempt and starts it
func (s *Server) handleUnlockSession(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := s.station.Session.PayToUnlockWith(r.Context(), req.Company, req.Role, s.permission(req.PermissionGranted))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleSendTurn sends one candidate message
func (s *Server) handleSendTurn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := s.decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	snap, err := s.station.Session.SendTurn(r.Context(), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handleEndSession ends the mock interview and releases the devices
func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	s.station.Session.End()
	s.jsonResponse(w, http.StatusOK, s.station.Session.Snapshot(r.Context()))
}

// handleSelectTab switches the prep station tab
func (s *Server) handleSelectTab(w http.ResponseWriter, r *http.Request) {
	if err := s.station.SelectTab(types.PrepTab(r.PathValue("tab"))); err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"tab": string(s.station.Tab())})
}

// handleGetPoints returns the balance and attempt usage
func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	resp, err := s.points(r, 0)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleEarnPoints credits the community post reward
func (s *Server) handleEarnPoints(w http.ResponseWriter, r *http.Request) {
	if _, err := s.station.Points.EarnForPost(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	resp, err := s.points(r, ledger.CommunityPostReward)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) points(r *http.Request, earned int) (PointsResponse, error) {
	balance, err := s.station.Points.Balance(r.Context())
	if err != nil {
		return PointsResponse{}, err
	}
	usage, err := s.station.Quota.Used(r.Context())
	if err != nil {
		return PointsResponse{}, err
	}
	return PointsResponse{
		Balance:      balance,
		Earned:       earned,
		Usage:        usage,
		FreeAttempts: s.station.Quota.Limit(),
	}, nil
}

package api

import "net/http"

func (s *Server) handleListPools(w http.ResponseWriter, _ *http.Request) {
	pools := s.pools.List()
	s.writeJSON(w, http.StatusOK, pools)
}

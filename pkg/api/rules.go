package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/carverauto/pulse/pkg/rules"
)

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Rules.List(r.Context())
	if err != nil {
		respondServiceError(w, "listing rules", err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

func (s *Server) getRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule, err := s.deps.Rules.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, "reading rule", err)
		return
	}

	respondJSON(w, http.StatusOK, rule)
}

func (s *Server) createRule(w http.ResponseWriter, r *http.Request) {
	var spec rules.RuleSpec
	if err := decodeBody(r, &spec); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule := spec.Rule()
	if err := s.deps.Rules.Create(r.Context(), &rule); err != nil {
		respondServiceError(w, "creating rule", err)
		return
	}

	s.deps.RulesChanged()
	log.Printf("Created rule %d (%s)", rule.ID, rule.Name)

	respondJSON(w, http.StatusCreated, rule)
}

func (s *Server) updateRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var spec rules.RuleSpec
	if err := decodeBody(r, &spec); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rule := spec.Rule()
	rule.ID = id

	if err := s.deps.Rules.Update(r.Context(), &rule); err != nil {
		respondServiceError(w, "updating rule", err)
		return
	}

	s.deps.RulesChanged()

	updated, err := s.deps.Rules.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, "reading rule", err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.deps.Rules.Delete(r.Context(), id); err != nil {
		respondServiceError(w, "deleting rule", err)
		return
	}

	s.deps.RulesChanged()
	log.Printf("Deleted rule %d", id)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setRuleEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	enabled := mux.Vars(r)["action"] == "enable"

	if err := s.deps.Rules.SetEnabled(r.Context(), id, enabled); err != nil {
		respondServiceError(w, "updating rule", err)
		return
	}

	s.deps.RulesChanged()

	rule, err := s.deps.Rules.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, "reading rule", err)
		return
	}

	respondJSON(w, http.StatusOK, rule)
}

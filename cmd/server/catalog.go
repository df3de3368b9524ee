package main

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/factoryplan/internal/catalog"
)

func (s *server) handleRawMaterialsList(w http.ResponseWriter, r *http.Request) {
	materials, err := s.store.ListRawMaterials(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *server) handleRawMaterialsGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "raw material")
	if !ok {
		return
	}

	material, err := s.store.GetRawMaterial(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (s *server) handleRawMaterialsCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.RawMaterialInput
	if !decodeJSON(w, r, &in) {
		return
	}

	material, err := s.store.CreateRawMaterial(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, material)
}

func (s *server) handleRawMaterialsUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "raw material")
	if !ok {
		return
	}

	var in catalog.RawMaterialInput
	if !decodeJSON(w, r, &in) {
		return
	}

	material, err := s.store.UpdateRawMaterial(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, material)
}

func (s *server) handleRawMaterialsDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "raw material")
	if !ok {
		return
	}

	if err := s.store.DeleteRawMaterial(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProductsList(w http.ResponseWriter, r *http.Request) {
	products, err := s.store.ListProducts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *server) handleProductsGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "product")
	if !ok {
		return
	}

	product, err := s.store.GetProduct(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *server) handleProductsCreate(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	product, err := s.store.CreateProduct(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (s *server) handleProductsUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "product")
	if !ok {
		return
	}

	var in catalog.ProductInput
	if !decodeJSON(w, r, &in) {
		return
	}

	product, err := s.store.UpdateProduct(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (s *server) handleProductsDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "product")
	if !ok {
		return
	}

	if err := s.store.DeleteProduct(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseID(w http.ResponseWriter, r *http.Request, kind string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid " + kind + " id"})
		return 0, false
	}
	return id, true
}

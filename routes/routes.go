package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/defesacivil-sl/boletim/handlers"
	"github.com/defesacivil-sl/boletim/middleware"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(bh *handlers.BoletimHandler, uploadsDir string) http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	if uploadsDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))),
		)
	}

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/me", handlers.GetCurrentUser).Methods("GET")
	api.HandleFunc("/me/senha", handlers.ChangePassword).Methods("PUT")

	api.HandleFunc("/boletins", bh.SearchBoletins).Methods("GET")
	api.HandleFunc("/boletins", bh.CreateBoletim).Methods("POST")
	api.HandleFunc("/boletins/novo", bh.NewBoletimDefaults).Methods("GET")
	api.HandleFunc("/boletins/form-config", bh.GetFormConfig).Methods("GET")
	api.HandleFunc("/boletins/{id}", bh.GetBoletim).Methods("GET")
	api.HandleFunc("/boletins/{id}", bh.UpdateBoletim).Methods("PUT")
	api.HandleFunc("/boletins/{id}/fotos", bh.ListFotos).Methods("GET")
	api.HandleFunc("/boletins/{id}/fotos", bh.UploadFotos).Methods("POST")
	api.HandleFunc("/boletins/{id}/fotos/{fotoId}", bh.DeleteFoto).Methods("DELETE")

	api.HandleFunc("/responsaveis/{id}/assinatura", bh.GetAssinaturaResponsavel).Methods("GET")

	api.HandleFunc("/relatorios", handlers.GetRelatorio).Methods("GET")
	api.HandleFunc("/relatorios/estatisticas", handlers.GetEstatisticas).Methods("GET")
	api.HandleFunc("/relatorios/export/csv", handlers.ExportRelatorioCSV).Methods("GET")
	api.HandleFunc("/relatorios/export/excel", handlers.ExportRelatorioExcel).Methods("GET")

	// =====================================================
	// Admin Routes (require the admin role)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/boletins/{id}", bh.DeleteBoletim).Methods("DELETE")

	admin.HandleFunc("/users", handlers.GetAllUsers).Methods("GET")
	admin.HandleFunc("/users/{id}/role", handlers.UpdateUserRole).Methods("PUT")
	admin.HandleFunc("/users/{id}", handlers.DeactivateUser).Methods("DELETE")

	admin.HandleFunc("/tipos-construcao", handlers.GetTiposConstrucao).Methods("GET")
	admin.HandleFunc("/tipos-construcao", handlers.CreateTipoConstrucao).Methods("POST")
	admin.HandleFunc("/tipos-construcao/{id}", handlers.UpdateTipoConstrucao).Methods("PUT")
	admin.HandleFunc("/tipos-construcao/{id}", handlers.DeleteTipoConstrucao).Methods("DELETE")

	admin.HandleFunc("/encaminhamentos", handlers.GetEncaminhamentos).Methods("GET")
	admin.HandleFunc("/encaminhamentos", handlers.CreateEncaminhamento).Methods("POST")
	admin.HandleFunc("/encaminhamentos/{id}", handlers.UpdateEncaminhamento).Methods("PUT")
	admin.HandleFunc("/encaminhamentos/{id}", handlers.DeleteEncaminhamento).Methods("DELETE")

	admin.HandleFunc("/responsaveis", handlers.GetResponsaveis).Methods("GET")
	admin.HandleFunc("/responsaveis", handlers.CreateResponsavel).Methods("POST")
	admin.HandleFunc("/responsaveis/{id}", handlers.UpdateResponsavel).Methods("PUT")
	admin.HandleFunc("/responsaveis/{id}", handlers.DeleteResponsavel).Methods("DELETE")
	admin.HandleFunc("/responsaveis/{id}/assinatura", bh.UploadAssinaturaResponsavel).Methods("POST")
	admin.HandleFunc("/responsaveis/{id}/assinatura", bh.DeleteAssinaturaResponsavel).Methods("DELETE")

	admin.HandleFunc("/bairros", handlers.GetBairros).Methods("GET")
	admin.HandleFunc("/bairros", handlers.CreateBairro).Methods("POST")
	admin.HandleFunc("/bairros/{id}", handlers.UpdateBairro).Methods("PUT")
	admin.HandleFunc("/bairros/{id}", handlers.DeleteBairro).Methods("DELETE")

	admin.HandleFunc("/campos-obrigatorios", handlers.GetCamposObrigatorios).Methods("GET")
	admin.HandleFunc("/campos-obrigatorios", handlers.UpdateCamposObrigatorios).Methods("PUT")

	admin.HandleFunc("/configuracoes", handlers.GetConfiguracoes).Methods("GET")
	admin.HandleFunc("/configuracoes/{chave}", handlers.UpdateConfiguracao).Methods("PUT")

	return r
}

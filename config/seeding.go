package config

import (
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/models"
)

// SeedLookups inserts the initial lookup data. Each block skips itself when
// the table already has rows, so re-running is safe.
func SeedLookups(db *gorm.DB) error {
	var count int64

	db.Model(&models.TipoConstrucao{}).Count(&count)
	if count == 0 {
		tipos := []models.TipoConstrucao{
			{Nome: "Alvenaria"},
			{Nome: "Madeira"},
			{Nome: "Mista"},
			{Nome: "Outro"},
		}
		if err := db.Create(&tipos).Error; err != nil {
			return err
		}
	}

	db.Model(&models.Encaminhamento{}).Count(&count)
	if count == 0 {
		encaminhamentos := []models.Encaminhamento{
			{Nome: "Assistência Social"},
			{Nome: "Secretaria de Obras"},
			{Nome: "Interdição"},
			{Nome: "Vistoria Técnica Complementar"},
			{Nome: "Corpo de Bombeiros"},
		}
		if err := db.Create(&encaminhamentos).Error; err != nil {
			return err
		}
	}

	db.Model(&models.CampoObrigatorio{}).Count(&count)
	if count == 0 {
		campos := []models.CampoObrigatorio{
			{Campo: "nome_requerente", Obrigatorio: true},
			{Campo: "data_solicitacao", Obrigatorio: true},
			{Campo: "horario_solicitacao", Obrigatorio: true},
			{Campo: "solicitacao", Obrigatorio: true},
			{Campo: "relatorio", Obrigatorio: true},
			{Campo: "data_vistoria", Obrigatorio: true},
			{Campo: "cpf", Obrigatorio: false},
			{Campo: "rg", Obrigatorio: false},
			{Campo: "endereco", Obrigatorio: false},
			{Campo: "telefone", Obrigatorio: false},
			{Campo: "diagnostico", Obrigatorio: false},
		}
		if err := db.Create(&campos).Error; err != nil {
			return err
		}
	}

	db.Model(&models.Configuracao{}).Count(&count)
	if count == 0 {
		configs := []models.Configuracao{
			{Chave: "uf_padrao", Valor: "RS"},
			{Chave: "municipio_padrao", Valor: "São Leopoldo"},
		}
		if err := db.Create(&configs).Error; err != nil {
			return err
		}
	}

	return nil
}

// SeedAdminUser creates the bootstrap admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when no admin exists yet.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:         "Administrador",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	return db.Create(&admin).Error
}

package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/defesacivil-sl/boletim/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250301_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.TipoConstrucao{},
					&models.Encaminhamento{}, &models.Responsavel{}, &models.Bairro{},
					&models.Boletim{}, &models.BoletimEncaminhamento{},
					&models.Foto{}, &models.Assinatura{})
			},
		},
		{
			ID: "20250301_create_config_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.CampoObrigatorio{}, &models.Configuracao{})
			},
		},
		{
			ID: "20250315_add_vistoria_coordinates",
			Migrate: func(tx *gorm.DB) error {
				for _, col := range []string{"latitude", "longitude"} {
					if err := tx.Exec("ALTER TABLE boletins ADD COLUMN IF NOT EXISTS " + col + " double precision").Error; err != nil {
						return err
					}
				}
				return nil
			},
		},
	})
	return m.Migrate()
}

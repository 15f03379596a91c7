package cmd

import (
	"factorexposure/internal/app"
	"factorexposure/internal/repository"
)

type Handler struct {
	FactorRepository repository.FactorRepository
	ExposureService  app.ExposureService
}

func InitializeDependencies() (*Handler, error) {
	factorRepository := repository.NewCSVFactorRepository()
	priceRepository := repository.NewYahooPriceRepository()
	exposureService := app.NewExposureService(priceRepository)

	return &Handler{
		FactorRepository: factorRepository,
		ExposureService:  exposureService,
	}, nil
}

// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/detection.go -destination=detection_client_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/erp.go -destination=erp_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/journal.go -destination=journal_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/archive.go -destination=archiver_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/count_service.go -destination=count_service_mock.go -package=mocks

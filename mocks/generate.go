package mocks

//go:generate mockgen -destination=./mock_executor.go -package=mocks github.com/rxtech-lab/argo-strategy-builder/internal/runner CommandExecutor
//go:generate mockgen -destination=./mock_store.go -package=mocks github.com/rxtech-lab/argo-strategy-builder/internal/history Store

package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/pipelinerun --output domain/pipelinerun --outpkg pipelinerunmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/gamestats --output domain/gamestats --outpkg gamestatsmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Store --dir ../domain/warehouse --output domain/warehouse --outpkg warehousemock --filename store_mock.go

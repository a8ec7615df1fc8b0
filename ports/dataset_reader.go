package ports

import (
	"salesdash/domain/dataset"
)

// DatasetReader loads a tabular dataset snapshot
type DatasetReader interface {
	Read(path string) (*dataset.Table, error)
}

package app

import (
	"time"

	"ocean-manifest/internal/adapters"
	"ocean-manifest/internal/ports"
)

type Service struct {
	SpecLoader   ports.PipelineSpecPort
	Requirements ports.RequirementsPort
	Pyproject    ports.PyprojectPort
	OutputReader ports.OutputReaderPort
	IndexBuilder ports.IndexBuilderPort
	IndexWriter  ports.IndexWriterPort
	GraphExport  ports.GraphExportPort
	Snapshots    func(dir string) ports.SnapshotPort
	Clock        func() time.Time
}

func NewService() Service {
	return Service{
		SpecLoader:   adapters.NewSpecFileAdapter(),
		Requirements: adapters.NewRequirementsFileAdapter(),
		Pyproject:    adapters.NewPyprojectFileAdapter(),
		OutputReader: adapters.NewOutputReaderAdapter(),
		IndexBuilder: adapters.NewIndexBuilderAdapter(),
		IndexWriter:  adapters.NewIndexWriterAdapter(),
		GraphExport:  adapters.NewGraphExportAdapter(),
		Snapshots: func(dir string) ports.SnapshotPort {
			return adapters.NewSnapshotFileAdapter(dir)
		},
		Clock: time.Now,
	}
}

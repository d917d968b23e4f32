package core

type AppConfig interface {
	GetRuntimePath() string
	GetDatabasePath() string
	GetSnapshotDir() string
	GetStorageBackend() string
	GetAgentID() string
}

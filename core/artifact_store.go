package core

// ArtifactStore defines the interface for episode record persistence.
// Implementations should be thread-safe and scope artifacts by job name.
// Short method names (Save/Get/List/Delete) mirror other store interfaces for
// consistency.
type ArtifactStore interface {
	Save(jobName, artifactID string, data []byte) error
	Get(jobName, artifactID string) ([]byte, error)
	List(jobName string) ([]string, error)
	Delete(jobName, artifactID string) error
}

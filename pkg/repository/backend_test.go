package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/haven-lab/lifeline/pkg/domain/interfaces"
	"github.com/haven-lab/lifeline/pkg/repository/firestore"
	"github.com/haven-lab/lifeline/pkg/repository/memory"
)

func newMemoryRepo(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID, "",
		firestore.WithCollectionPrefix(fmt.Sprintf("test-%d-", time.Now().UnixNano())),
	)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

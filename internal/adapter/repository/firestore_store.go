package repository

import (
	"context"
	stderrors "errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// FirestoreStore reports on the reachability of the firestore backend.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// Ping reads at most one product document.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection(productsCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err != nil && !stderrors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

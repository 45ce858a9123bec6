package outbox

import (
	"context"
	"testing"
)

func TestInsertParamsValidate(t *testing.T) {
	cases := []struct {
		name    string
		params  InsertParams
		wantErr bool
	}{
		{name: "complete", params: InsertParams{Kind: KindEmail, Template: "counter_offer_proposal"}},
		{name: "missing kind", params: InsertParams{Template: "counter_offer_proposal"}, wantErr: true},
		{name: "missing template", params: InsertParams{Kind: KindEmail}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.params.validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestUnconfiguredRepositoryFails(t *testing.T) {
	var repo *Repository
	if _, err := repo.Insert(context.Background(), InsertParams{Kind: KindEmail, Template: "x"}); err == nil {
		t.Fatalf("expected error from nil repository")
	}
	if err := repo.MarkSucceeded(context.Background(), [16]byte{}); err == nil {
		t.Fatalf("expected error from nil repository")
	}
}

package model_test

import (
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/NofaBC/TechSupport-AI/pkg/domain/model"
)

func pb(id string) *model.Playbook {
	return &model.Playbook{
		Metadata: model.PlaybookMetadata{ID: id, Name: id},
		Steps: []model.PlaybookStep{
			{ID: "s1", Title: "Step", Instruction: "Do it."},
		},
	}
}

func TestRegistryReplaceAndGet(t *testing.T) {
	r := model.NewPlaybookRegistry()
	gt.Equal(t, r.Len(), 0)

	r.Replace([]*model.Playbook{pb("a"), pb("b")})
	gt.Equal(t, r.Len(), 2)

	got, err := r.Get("a")
	gt.NoError(t, err).Required()
	gt.Equal(t, got.Metadata.ID, "a")

	_, err = r.Get("missing")
	gt.Error(t, err)
}

func TestRegistryReplaceIsWholesale(t *testing.T) {
	r := model.NewPlaybookRegistry()
	r.Replace([]*model.Playbook{pb("a"), pb("b")})
	r.Replace([]*model.Playbook{pb("c")})

	gt.Equal(t, r.Len(), 1)
	_, err := r.Get("a")
	gt.Error(t, err)

	got, err := r.Get("c")
	gt.NoError(t, err).Required()
	gt.Equal(t, got.Metadata.ID, "c")
}

func TestRegistryListSorted(t *testing.T) {
	r := model.NewPlaybookRegistry()
	r.Replace([]*model.Playbook{pb("c"), pb("a"), pb("b")})

	list := r.List()
	gt.Array(t, list).Length(3)
	gt.Equal(t, list[0].Metadata.ID, "a")
	gt.Equal(t, list[2].Metadata.ID, "c")
}

func TestRegistryConcurrentReload(t *testing.T) {
	r := model.NewPlaybookRegistry()
	r.Replace([]*model.Playbook{pb("a")})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				r.Replace([]*model.Playbook{pb("a"), pb("b")})
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				// Readers must always see a complete registry
				n := r.Len()
				gt.Bool(t, n == 1 || n == 2).True()
			}
		}()
	}
	wg.Wait()
}

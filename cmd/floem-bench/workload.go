package main

import (
	"fmt"
	"math/rand"

	"github.com/woodworthkyle/floem/pkg/view"
)

// row is the synthetic source item. The ID is the reconciliation key.
type row struct {
	ID    int64
	Label string
}

// rowView is the child view constructed for a row.
type rowView struct {
	id  view.ID
	row row
}

func newRowView(r row) view.View {
	return &rowView{id: view.NextID(), row: r}
}

func (v *rowView) ID() view.ID { return v.id }

func (v *rowView) ForEachChild(func(view.View) bool) {}

// workload mutates a keyed row collection generation by generation.
type workload struct {
	rng    *rand.Rand
	rows   []row
	nextID int64
}

func newWorkload(seed int64, items int) *workload {
	w := &workload{rng: rand.New(rand.NewSource(seed))}
	for i := 0; i < items; i++ {
		w.rows = append(w.rows, w.newRow())
	}
	return w
}

func (w *workload) newRow() row {
	w.nextID++
	return row{ID: w.nextID, Label: fmt.Sprintf("row-%d", w.nextID)}
}

// next produces the following generation: churn controls roughly what
// fraction of rows is removed and replaced, and the survivors are
// shuffled about half the time.
func (w *workload) next(churn float64) []row {
	rows := append([]row(nil), w.rows...)

	removals := int(float64(len(rows)) * churn)
	for i := 0; i < removals && len(rows) > 0; i++ {
		at := w.rng.Intn(len(rows))
		rows = append(rows[:at], rows[at+1:]...)
	}

	for i := 0; i < removals; i++ {
		at := w.rng.Intn(len(rows) + 1)
		rows = append(rows[:at], append([]row{w.newRow()}, rows[at:]...)...)
	}

	if w.rng.Intn(2) == 0 {
		w.rng.Shuffle(len(rows), func(i, j int) {
			rows[i], rows[j] = rows[j], rows[i]
		})
	}

	w.rows = rows
	return rows
}

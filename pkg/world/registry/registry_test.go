package registry

import (
	"errors"
	"testing"
)

type thing struct{ name Name }

func (t thing) RegistryName() Name { return t.name }

func TestParseName(t *testing.T) {
	tests := []struct {
		in    string
		want  Name
		valid bool
	}{
		{"core:stone", Core("stone"), true},
		{"stone", Core("stone"), true},
		{"my_mod:snow_grass2", NewName("my_mod", "snow_grass2"), true},
		{"Core:stone", Name{}, false},
		{"core:", Name{}, false},
		{":stone", Name{}, false},
		{"core:st-one", Name{}, false},
	}
	for _, tt := range tests {
		got, err := ParseName(tt.in)
		if tt.valid {
			if err != nil || got != tt.want {
				t.Errorf("ParseName(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
			continue
		}
		if !errors.Is(err, ErrIllegalName) {
			t.Errorf("ParseName(%q) err = %v, want ErrIllegalName", tt.in, err)
		}
	}
}

func TestPushAndLookup(t *testing.T) {
	r := New[thing]()
	a, err := r.Push(thing{Core("a")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Push(thing{Core("b")})
	if err != nil {
		t.Fatal(err)
	}
	if a != 1 || b != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", a, b)
	}

	id, obj, ok := r.ByName(Core("b"))
	if !ok || id != b || obj.name != Core("b") {
		t.Errorf("ByName(b) = %d %v %v", id, obj, ok)
	}
	if _, ok := r.ByID(3); ok {
		t.Error("ByID(3) found an object")
	}
	if _, err := r.IDOf(Core("zzz")); !errors.Is(err, ErrNotFound) {
		t.Errorf("IDOf(missing) err = %v", err)
	}
	if _, err := r.Push(thing{Core("a")}); !errors.Is(err, ErrNameExists) {
		t.Errorf("duplicate Push err = %v", err)
	}
	if _, err := r.Push(thing{NewName("x", "Bad")}); !errors.Is(err, ErrIllegalName) {
		t.Errorf("illegal Push err = %v", err)
	}
}

func TestInsertWithID(t *testing.T) {
	r := New[thing]()
	if err := r.InsertWithID(10, thing{Core("ten")}); err != nil {
		t.Fatal(err)
	}
	if err := r.InsertWithID(10, thing{Core("other")}); !errors.Is(err, ErrIDExists) {
		t.Errorf("duplicate id err = %v", err)
	}
	id, err := r.Push(thing{Core("next")})
	if err != nil || id != 11 {
		t.Errorf("Push after InsertWithID = %d, %v; want 11", id, err)
	}
}

func TestEachOrder(t *testing.T) {
	r := New[thing]()
	_ = r.InsertWithID(5, thing{Core("e")})
	_ = r.InsertWithID(2, thing{Core("b")})
	_, _ = r.Push(thing{Core("f")})

	var got []ID
	r.Each(func(id ID, _ thing) { got = append(got, id) })
	want := []ID{2, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("Each visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Each visited %v, want %v", got, want)
		}
	}
}

func TestWithIDMapping(t *testing.T) {
	saved := New[thing]()
	_, _ = saved.Push(thing{Core("a")})
	_, _ = saved.Push(thing{Core("b")})
	m := saved.IDMapping()

	// A fresh registry registered in another order gets the saved ids back.
	fresh := New[thing]()
	_, _ = fresh.Push(thing{Core("c")})
	_, _ = fresh.Push(thing{Core("b")})
	_, _ = fresh.Push(thing{Core("a")})

	remapped, err := fresh.WithIDMapping(m)
	if err != nil {
		t.Fatal(err)
	}
	for _, tt := range []struct {
		name string
		id   ID
	}{{"a", 1}, {"b", 2}, {"c", 3}} {
		if id, _ := remapped.IDOf(Core(tt.name)); id != tt.id {
			t.Errorf("id of %s = %d, want %d", tt.name, id, tt.id)
		}
	}

	empty := New[thing]()
	if _, err := empty.WithIDMapping(m); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing names err = %v", err)
	}
}

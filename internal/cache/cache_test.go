package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_BasicOperations(t *testing.T) {
	c := NewCache[string, int]()

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected missing key not to be found")
	}

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)

	if v, ok := c.Get("a"); !ok || v != 3 {
		t.Errorf("Expected a=3, got %d (%v)", v, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Expected 2 items, got %d", c.Len())
	}

	c.Delete("a")
	c.Delete("never-there")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be deleted")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Expected empty cache after Clear, got %d", c.Len())
	}
}

func TestCache_SetTo(t *testing.T) {
	tests := []struct {
		name  string
		items map[int]string
		want  int
	}{
		{"Replace", map[int]string{1: "one", 2: "two"}, 2},
		{"Empty map", map[int]string{}, 0},
		{"Nil map", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCache[int, string]()
			c.Set(99, "old")

			c.SetTo(tt.items)

			if c.Len() != tt.want {
				t.Errorf("Expected %d items, got %d", tt.want, c.Len())
			}
			if _, ok := c.Get(99); ok {
				t.Error("Expected old items to be gone")
			}
			c.Set(100, "new")
			if _, ok := c.Get(100); !ok {
				t.Error("Expected cache to stay writable")
			}
		})
	}
}

func TestCache_Concurrency(t *testing.T) {
	c := NewCache[string, int]()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, i)
				c.Get(key)
				if j%25 == 0 {
					c.SetTo(map[string]int{key: j})
				}
			}
		}(i)
	}
	wg.Wait()

	if c.Len() > 10 {
		t.Errorf("Expected at most 10 keys, got %d", c.Len())
	}
}

func TestRenderedCache(t *testing.T) {
	ClearRendered()
	defer ClearRendered()

	SetRendered("hash", "mmark", "gruvbox", []byte("<p>x</p>"), "extra")

	got, ok := GetRendered("hash", "mmark", "gruvbox")
	if !ok || string(got.HTML) != "<p>x</p>" || got.Extra != "extra" {
		t.Errorf("Unexpected cached entry %+v (%v)", got, ok)
	}

	for _, key := range [][3]string{
		{"hash", "classic", "gruvbox"},
		{"hash", "mmark", "github"},
		{"other", "mmark", "gruvbox"},
	} {
		if _, ok := GetRendered(key[0], key[1], key[2]); ok {
			t.Errorf("Expected no entry for %v", key)
		}
	}
}

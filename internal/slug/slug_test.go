package slug_test

import (
	"testing"

	"tienda/internal/slug"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Café Élite!", "cafe-elite"},
		{"  Running   Shoes  ", "running-shoes"},
		{"Guantes_de_Boxeo", "guantes-de-boxeo"},
		{"Balón #1 (edición 2024)", "balon-1-edicion-2024"},
		{"---ya-es-slug---", "ya-es-slug"},
		{"", ""},
		{"¡¡¡", ""},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, slug.Make(c.in), "input: %q", c.in)
	}
}

func TestMakeIsIdempotent(t *testing.T) {
	inputs := []string{"Café Élite!", "Camiseta Pro / Talla M", "a_b c-d", "ZAPATOS"}
	for _, in := range inputs {
		once := slug.Make(in)
		assert.Equal(t, once, slug.Make(once), "input: %q", in)
	}
}

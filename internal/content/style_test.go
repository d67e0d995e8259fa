package content

import "testing"

func TestStyle(t *testing.T) {
	t.Run("Parse keeps order", func(t *testing.T) {
		st := ParseStyle("width: 400px; HEIGHT: auto;; bogus; float:left")
		if got := st.String(); got != "width: 400px; height: auto; float: left;" {
			t.Errorf("Unexpected style %q", got)
		}
	})

	t.Run("Set replaces in place", func(t *testing.T) {
		st := ParseStyle("width: 400px; height: auto")
		st.Set("width", "200px")
		if got := st.String(); got != "width: 200px; height: auto;" {
			t.Errorf("Unexpected style %q", got)
		}
	})

	t.Run("Del", func(t *testing.T) {
		st := ParseStyle("width: 400px; height: auto")
		st.Del("width")
		st.Del("missing")
		if got := st.String(); got != "height: auto;" {
			t.Errorf("Unexpected style %q", got)
		}
	})

	t.Run("Values with colons", func(t *testing.T) {
		st := ParseStyle("background: url(http://x/y.png)")
		if got := st.Get("background"); got != "url(http://x/y.png)" {
			t.Errorf("Unexpected value %q", got)
		}
	})
}

package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const shellStyle = `body{font-family:system-ui,sans-serif;margin:2rem;max-width:48rem}` +
	`button{margin:0 .5rem .5rem 0}pre{background:#f4f4f4;padding:1rem;white-space:pre-wrap}`

const shellScript = `(function () {
  var log = document.getElementById("log");
  function show(label, value) {
    log.textContent = label + ": " + JSON.stringify(value, null, 2) + "\n\n" + log.textContent;
  }
  function run(label, p) {
    p.then(function (v) { show(label, v); }, function (e) { show(label + " error", e.message); });
  }
  var sb = window.StoreBridge;
  var actions = {
    init: function () { run("init", sb.initPurchases(app.value, scheme.value)); },
    availability: function () { run("availability", sb.checkPurchasesAvailability()); },
    products: function () { run("products", sb.getProducts(["gems_100", "no_ads", "premium_monthly"])); },
    purchases: function () { run("purchases", sb.getPurchases()); },
    buy: function () { run("purchase", sb.purchaseProduct({ productId: "gems_100", quantity: 1 })); },
    review: function () { run("review", sb.openReviewForm()); }
  };
  document.querySelectorAll("[data-run]").forEach(function (b) {
    b.addEventListener("click", function () { actions[b.dataset.run](); });
  });
  sb.on("intent", function (d) { show("intent", d); });
})();`

var shellActions = []struct{ run, label string }{
	{"init", "initPurchases"},
	{"availability", "checkPurchasesAvailability"},
	{"products", "getProducts"},
	{"purchases", "getPurchases"},
	{"buy", "purchaseProduct gems_100"},
	{"review", "openReviewForm"},
}

// Shell is the demo page that drives the bridge. scriptURL points at the
// versioned storebridge.js.
func Shell(scriptURL string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		err := write(w,
			`<!doctype html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>StoreBridge</title><style>`, shellStyle, `</style></head><body>`,
			`<h1>StoreBridge sandbox</h1><p>`,
			`<label>Application id <input id="app" value="sandbox-app"></label> `,
			`<label>Scheme <input id="scheme" value="storebridge"></label></p><div>`,
		)
		if err != nil {
			return err
		}
		for _, a := range shellActions {
			if err := write(w, `<button data-run="`, a.run, `">`, e(a.label), `</button>`); err != nil {
				return err
			}
		}
		return write(w,
			`</div><pre id="log"></pre>`,
			`<script src="`, e(scriptURL), `"></script>`,
			`<script>`, shellScript, `</script></body></html>`,
		)
	})
}

package dashboards

import "net/http"

const indexHTML = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>bridge</title>
<style>
body { font-family: monospace; margin: 2em; }
.bar { display: inline-block; height: 0.8em; background: #4a8; }
td { padding: 0 1em 0 0; }
</style>
</head>
<body>
<table id="state"></table>
<ul id="recent"></ul>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (ev) => {
  const report = JSON.parse(ev.data);
  const table = document.getElementById("state");
  table.innerHTML = "";
  for (const [name, value] of Object.entries(report.state)) {
    const row = table.insertRow();
    row.insertCell().textContent = name;
    row.insertCell().textContent = value.toFixed(2);
    const bar = document.createElement("span");
    bar.className = "bar";
    bar.style.width = (value * 200) + "px";
    row.insertCell().appendChild(bar);
  }
  const list = document.getElementById("recent");
  list.innerHTML = "";
  for (const msg of report.recent || []) {
    const item = document.createElement("li");
    item.textContent = "[" + msg.peer + "] " + msg.text;
    list.appendChild(item);
  }
};
</script>
</body>
</html>
`

func serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

package main

import (
	"fmt"
	"net/http"
)

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Egg Hunt Server</title>
<style>
*{margin:0;padding:0;box-sizing:border-box}
body{
font-family:system-ui,-apple-system,'Segoe UI',Roboto,Helvetica,Arial,sans-serif;
background:#191919;color:#e5e5e5;min-height:100vh;
display:flex;align-items:center;justify-content:center;padding:24px;
}
.card{
background:#242424;border:1px solid #333;border-radius:6px;
padding:32px 40px;text-align:center;
}
h1{font-size:18px;font-weight:600;margin-bottom:8px}
p{font-size:12px;color:#737373;line-height:1.6}
.stats{margin-top:16px;font-size:13px;color:#e5e5e5}
</style>
</head>
<body>
<div class="card">
<h1>🥚 Egg Hunt Server</h1>
<p>Real-time multiplayer room host.<br>Connect a game client to <code>/ws</code>.</p>
<div class="stats">rooms: %d &middot; players: %d</div>
</div>
</body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexHTML, s.hub.RoomCount(), s.hub.PlayerCount())
}

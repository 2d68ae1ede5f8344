package webapp

const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>MCQ Quiz</title>
  <style>
    :root {
      --bg: #0f172a;
      --panel: rgba(255, 255, 255, 0.06);
      --text: #e2e8f0;
      --muted: #94a3b8;
      --accent: #22d3ee;
      --good: #34d399;
      --bad: #f43f5e;
      font-family: "Segoe UI", "Helvetica Neue", sans-serif;
    }
    * { box-sizing: border-box; }
    body { margin: 0; min-height: 100vh; background: var(--bg); color: var(--text);
      display: flex; justify-content: center; padding: 32px 16px; }
    .shell { width: min(820px, 100%); }
    .card { background: var(--panel); border-radius: 16px; padding: 22px; margin-bottom: 16px; }
    .chapter { color: var(--accent); font-size: 14px; letter-spacing: 0.4px; }
    .prompt { font-size: 21px; font-weight: 700; margin: 8px 0 16px; line-height: 1.4; }
    .choice { display: flex; gap: 10px; align-items: center; padding: 10px 12px; margin: 6px 0;
      border-radius: 10px; border: 1px solid rgba(255,255,255,0.08); cursor: pointer; }
    .choice.selected { border-color: var(--accent); background: rgba(34,211,238,0.1); }
    .bar { height: 10px; border-radius: 999px; background: var(--panel); overflow: hidden; margin-bottom: 8px; }
    .bar span { display: block; height: 100%; width: 0; background: var(--accent); transition: width 200ms; }
    .muted { color: var(--muted); font-size: 14px; }
    .good { color: var(--good); }
    .bad { color: var(--bad); }
    #feedback { white-space: pre-line; margin: 12px 0; min-height: 1.2em; }
    button { background: var(--accent); border: none; border-radius: 10px; padding: 10px 16px;
      font-weight: 700; cursor: pointer; }
    table { width: 100%; border-collapse: collapse; margin: 12px 0; }
    td { padding: 6px 4px; border-bottom: 1px solid rgba(255,255,255,0.06); }
  </style>
</head>
<body>
  <div class="shell">
    <div class="bar"><span id="bar"></span></div>
    <div class="muted" id="counts"></div>
    <div class="card" id="card">
      <div class="chapter" id="chapter"></div>
      <div class="prompt" id="prompt">Loading question...</div>
      <div id="choices"></div>
      <div id="feedback"></div>
      <button id="action">Submit</button>
    </div>
    <div class="card" id="results" style="display:none;">
      <div class="prompt">Quiz Results</div>
      <div id="total"></div>
      <table id="chapters"></table>
      <button onclick="reset()">Start Again</button>
    </div>
  </div>
  <script>
    let sessionId = "";
    let selected = "";

    async function call(method, url, body) {
      const res = await fetch(url, {
        method: method,
        headers: { "Content-Type": "application/json" },
        body: body ? JSON.stringify(body) : undefined
      });
      return { ok: res.ok, data: await res.json() };
    }

    function progress(p) {
      const pct = p.total === 0 ? 0 : Math.round(p.completed / p.total * 100);
      document.getElementById("bar").style.width = pct + "%";
      document.getElementById("counts").innerText = p.completed + " / " + p.total + " answered, " + p.correct + " correct";
    }

    function render(state) {
      sessionId = state.sessionId;
      progress(state.progress);
      if (state.finished) { showResults(state.summary); return; }
      document.getElementById("results").style.display = "none";
      document.getElementById("card").style.display = "block";
      const q = state.question;
      selected = "";
      document.getElementById("chapter").innerText = q.chapter;
      document.getElementById("prompt").innerText = "Q" + q.number + ": " + q.prompt;
      const box = document.getElementById("choices");
      box.innerHTML = "";
      ["A", "B", "C", "D"].forEach(key => {
        const row = document.createElement("div");
        row.className = "choice";
        row.innerText = key + ". " + q.choices[key];
        row.onclick = () => {
          if (state.answered) return;
          selected = key;
          box.querySelectorAll(".choice").forEach(c => c.classList.remove("selected"));
          row.classList.add("selected");
        };
        box.appendChild(row);
      });
      if (state.answered && state.outcome) {
        feedback(state.outcome);
        nextButton(state.progress.completed + 1 >= state.progress.total);
      } else {
        document.getElementById("feedback").innerText = "";
        const btn = document.getElementById("action");
        btn.innerText = "Submit";
        btn.onclick = submit;
      }
    }

    function feedback(o) {
      const fb = document.getElementById("feedback");
      fb.className = o.correct ? "good" : "bad";
      fb.innerText = (o.correct ? "✅ Correct!" : "❌ Incorrect. Correct: " + o.correctChoice) +
        "\n📄 Page: " + o.page + "\n📂 Source: " + o.source;
    }

    function nextButton(last) {
      const btn = document.getElementById("action");
      btn.innerText = last ? "Show Results" : "Next";
      btn.onclick = next;
    }

    async function submit() {
      if (!selected) {
        const fb = document.getElementById("feedback");
        fb.className = "bad";
        fb.innerText = "Please select A, B, C or D.";
        return;
      }
      const res = await call("POST", "/api/answer", { sessionId: sessionId, answer: selected });
      if (!res.ok) { load(); return; }
      progress(res.data.progress);
      feedback(res.data.outcome);
      nextButton(res.data.last);
    }

    async function next() {
      const res = await call("POST", "/api/next", { sessionId: sessionId });
      res.ok ? render(res.data) : load();
    }

    function showResults(sum) {
      document.getElementById("card").style.display = "none";
      document.getElementById("results").style.display = "block";
      document.getElementById("total").innerText = "Total Score: " + sum.totalCorrect + "/" + sum.totalQuestions;
      const table = document.getElementById("chapters");
      table.innerHTML = "";
      (sum.chapters || []).forEach(c => {
        const tr = document.createElement("tr");
        tr.innerHTML = "<td></td><td></td>";
        tr.children[0].innerText = c.chapter;
        tr.children[1].innerText = c.correct + "/" + c.total;
        table.appendChild(tr);
      });
    }

    async function reset() { render((await call("POST", "/api/reset")).data); }
    async function load() { render((await call("GET", "/api/state")).data); }

    load();
  </script>
</body>
</html>`

package crawl

import (
	"sync"

	"github.com/sitedoc-dev/sitedoc/internal/frontier"
	"github.com/sitedoc-dev/sitedoc/internal/model"
)

// state is the shared mutable crawl state: the frontier plus the
// in-flight bookkeeping that tells idle workers whether more work can
// still appear.
//
// Design decision: Workers must not exit just because the pending
// queue is momentarily empty. A page still being rendered may link to
// dozens of new URLs. A condition variable over (pending, inflight)
// gives the precise termination rule: the crawl is over when the queue
// is empty AND no page is in flight.
type state struct {
	mu   sync.Mutex
	cond *sync.Cond

	frontier *frontier.Frontier

	// maxPages is the global page-count ceiling, enforced at take so
	// admitted-but-never-rendered tasks simply stay in the queue.
	maxPages int

	// taken counts tasks handed to workers.
	taken int

	// inflight counts tasks taken but not yet completed.
	inflight int

	// stopped is set on cancellation and drains the pool: no further
	// tasks are handed out, in-flight pages finish best-effort.
	stopped bool
}

func newState(f *frontier.Frontier, maxPages int) *state {
	s := &state{frontier: f, maxPages: maxPages}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// next blocks until a task is available, the crawl is finished, or the
// crawl is stopped. It returns false when the worker should exit.
// Taking a task marks it in flight atomically, so no other worker can
// observe an empty crawl while this one still runs.
func (s *state) next() (model.PageTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.stopped || (s.maxPages > 0 && s.taken >= s.maxPages) {
			return model.PageTask{}, false
		}
		if task, ok := s.frontier.Take(); ok {
			s.taken++
			s.inflight++
			return task, true
		}
		if s.inflight == 0 {
			return model.PageTask{}, false
		}
		s.cond.Wait()
	}
}

// linked wakes waiting workers after a page's links were offered to
// the frontier.
func (s *state) linked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cond.Broadcast()
}

// done marks one in-flight task complete and wakes waiting workers,
// which may now observe crawl termination.
func (s *state) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	s.cond.Broadcast()
}

// stop transitions the crawl to draining: no new tasks are handed out.
func (s *state) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.cond.Broadcast()
}

// pagesTaken returns the number of tasks handed to workers.
func (s *state) pagesTaken() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taken
}

// linker admits discovered links to the frontier in parent discovery
// order. Workers complete pages in whatever order rendering finishes,
// but discovery indexes are assigned at admission, so admitting links
// as pages complete would let a slow page reorder its descendants
// behind a faster sibling's. Buffering each page's links until every
// lower-index page has submitted makes the assigned indexes identical
// to a single-worker crawl, whatever the pool size.
type linker struct {
	mu       sync.Mutex
	frontier *frontier.Frontier

	// next is the discovery index whose links are admitted next.
	// Tasks are taken from the frontier in index order, so every
	// index below next has already submitted.
	next     int
	buffered map[int]linkBatch
}

// linkBatch holds one completed page's outbound links until its turn.
type linkBatch struct {
	parent string
	depth  int
	links  []string
}

func newLinker(f *frontier.Frontier) *linker {
	return &linker{frontier: f, buffered: make(map[int]linkBatch)}
}

// submit records the links discovered on one completed page and
// flushes buffered batches in index order. It never blocks: a batch
// arriving out of order is parked until its predecessors complete.
func (l *linker) submit(task model.PageTask, links []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buffered[task.Index] = linkBatch{parent: task.URL, depth: task.Depth, links: links}
	for {
		batch, ok := l.buffered[l.next]
		if !ok {
			return
		}
		delete(l.buffered, l.next)
		for _, link := range batch.links {
			l.frontier.Offer(link, batch.depth+1, batch.parent)
		}
		l.next++
	}
}

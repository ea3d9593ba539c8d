package service

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/sensiveblog/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var rankingBaseTime = time.Date(2024, 4, 14, 12, 0, 0, 0, time.UTC)

func setupRankingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:ranking-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Default.LogMode(logger.Silent))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}

func seedAuthor(t *testing.T, gdb *gorm.DB, username string) db.Author {
	t.Helper()
	author := db.Author{Username: username, Password: "hashed"}
	if err := gdb.Create(&author).Error; err != nil {
		t.Fatalf("failed to seed author %s: %v", username, err)
	}
	return author
}

func seedTag(t *testing.T, gdb *gorm.DB, title string) db.Tag {
	t.Helper()
	tag := db.Tag{Title: title}
	if err := gdb.Create(&tag).Error; err != nil {
		t.Fatalf("failed to seed tag %s: %v", title, err)
	}
	return tag
}

func seedPost(t *testing.T, gdb *gorm.DB, slug string, author db.Author, published time.Time, tags ...db.Tag) db.Post {
	t.Helper()
	post := db.Post{
		Title:       "Post " + slug,
		Slug:        slug,
		Text:        "text of " + slug,
		AuthorID:    author.ID,
		PublishedAt: published,
	}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post %s: %v", slug, err)
	}
	if len(tags) > 0 {
		if err := gdb.Model(&post).Association("Tags").Append(tags); err != nil {
			t.Fatalf("failed to tag post %s: %v", slug, err)
		}
	}
	return post
}

func seedLikes(t *testing.T, gdb *gorm.DB, post db.Post, authors ...db.Author) {
	t.Helper()
	if err := gdb.Model(&post).Association("Likes").Append(authors); err != nil {
		t.Fatalf("failed to like post %s: %v", post.Slug, err)
	}
}

func seedComment(t *testing.T, gdb *gorm.DB, post db.Post, author db.Author, text string) {
	t.Helper()
	comment := db.Comment{Text: text, PostID: post.ID, AuthorID: author.ID, PublishedAt: rankingBaseTime}
	if err := gdb.Create(&comment).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
}

func slugsOf(posts []db.Post) []string {
	slugs := make([]string, 0, len(posts))
	for _, post := range posts {
		slugs = append(slugs, post.Slug)
	}
	return slugs
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPopularPostsOrdersByLikesWithStableTieBreak(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	bob := seedAuthor(t, gdb, "bob")
	carol := seedAuthor(t, gdb, "carol")

	old := seedPost(t, gdb, "old", alice, rankingBaseTime.Add(-48*time.Hour))
	recent := seedPost(t, gdb, "recent", alice, rankingBaseTime)
	top := seedPost(t, gdb, "top", bob, rankingBaseTime.Add(-72*time.Hour))
	seedPost(t, gdb, "unliked", bob, rankingBaseTime.Add(time.Hour))

	seedLikes(t, gdb, top, alice, bob, carol)
	seedLikes(t, gdb, old, carol)
	seedLikes(t, gdb, recent, bob)

	posts, err := PopularPosts(gdb, 5)
	if err != nil {
		t.Fatalf("popular posts: %v", err)
	}

	want := []string{"top", "recent", "old", "unliked"}
	if got := slugsOf(posts); !equalStrings(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}
	if posts[0].LikesCount != 3 {
		t.Fatalf("expected top post to have 3 likes, got %d", posts[0].LikesCount)
	}

	limited, err := PopularPosts(gdb, 2)
	if err != nil {
		t.Fatalf("popular posts limited: %v", err)
	}
	if got := slugsOf(limited); !equalStrings(got, want[:2]) {
		t.Fatalf("unexpected limited order: got %v", got)
	}
}

func TestPopularPostsAnnotatesCountsAndEagerLoads(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	bob := seedAuthor(t, gdb, "bob")
	travel := seedTag(t, gdb, "travel")
	food := seedTag(t, gdb, "food")
	art := seedTag(t, gdb, "art")

	post := seedPost(t, gdb, "tagged", alice, rankingBaseTime, travel, food, art)
	seedPost(t, gdb, "other", bob, rankingBaseTime.Add(-time.Hour), food)
	seedComment(t, gdb, post, bob, "Hi")
	seedComment(t, gdb, post, alice, "Bye")

	posts, err := PopularPosts(gdb, 1)
	if err != nil {
		t.Fatalf("popular posts: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected one post, got %d", len(posts))
	}

	got := posts[0]
	if got.Slug != "tagged" {
		t.Fatalf("unexpected post %s", got.Slug)
	}
	if got.CommentsCount != 2 {
		t.Fatalf("expected 2 comments, got %d", got.CommentsCount)
	}
	if got.TagsCount != 3 {
		t.Fatalf("expected 3 tags, got %d", got.TagsCount)
	}
	if got.Author.Username != "alice" {
		t.Fatalf("author not preloaded: %+v", got.Author)
	}

	if len(got.Tags) != 3 {
		t.Fatalf("expected 3 preloaded tags, got %d", len(got.Tags))
	}
	titles := []string{got.Tags[0].Title, got.Tags[1].Title, got.Tags[2].Title}
	if !equalStrings(titles, []string{"art", "food", "travel"}) {
		t.Fatalf("tags should be ordered by title, got %v", titles)
	}
	for _, tag := range got.Tags {
		want := int64(1)
		if tag.Title == "food" {
			want = 2
		}
		if tag.PostsWithTagCount != want {
			t.Fatalf("tag %s: expected %d posts, got %d", tag.Title, want, tag.PostsWithTagCount)
		}
	}
}

func TestFreshPostsOrdersByPublicationDate(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	seedPost(t, gdb, "middle", alice, rankingBaseTime.Add(-24*time.Hour))
	seedPost(t, gdb, "newest", alice, rankingBaseTime)
	seedPost(t, gdb, "oldest", alice, rankingBaseTime.Add(-48*time.Hour))

	posts, err := FreshPosts(gdb, 10)
	if err != nil {
		t.Fatalf("fresh posts: %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	if got := slugsOf(posts); !equalStrings(got, want) {
		t.Fatalf("unexpected order: got %v want %v", got, want)
	}
}

func TestFreshPostsOnEmptyStoreReturnsEmptySlice(t *testing.T) {
	gdb := setupRankingTestDB(t)

	posts, err := FreshPosts(gdb, 5)
	if err != nil {
		t.Fatalf("fresh posts: %v", err)
	}
	if posts == nil || len(posts) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", posts)
	}

	tags, err := PopularTags(gdb, 5)
	if err != nil {
		t.Fatalf("popular tags: %v", err)
	}
	if tags == nil || len(tags) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", tags)
	}
}

func TestPopularTagsReturnsTopByCountDeterministically(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")

	counts := []struct {
		title string
		posts int
	}{
		{title: "t-ten", posts: 10},
		{title: "t-eight-b", posts: 8},
		{title: "t-eight-a", posts: 8},
		{title: "t-five", posts: 5},
		{title: "t-three", posts: 3},
		{title: "t-one", posts: 1},
	}

	tags := make([]db.Tag, len(counts))
	for i, c := range counts {
		tags[i] = seedTag(t, gdb, c.title)
	}

	for i := 0; i < 10; i++ {
		var postTags []db.Tag
		for j, c := range counts {
			if i < c.posts {
				postTags = append(postTags, tags[j])
			}
		}
		seedPost(t, gdb, "post-"+strconv.Itoa(i), alice, rankingBaseTime.Add(-time.Duration(i)*time.Hour), postTags...)
	}

	want := []string{"t-ten", "t-eight-a", "t-eight-b", "t-five", "t-three"}
	for attempt := 0; attempt < 3; attempt++ {
		popular, err := PopularTags(gdb, 5)
		if err != nil {
			t.Fatalf("popular tags: %v", err)
		}
		if len(popular) != 5 {
			t.Fatalf("expected 5 tags, got %d", len(popular))
		}

		got := make([]string, 0, len(popular))
		for i, tag := range popular {
			got = append(got, tag.Title)
			if i > 0 && popular[i-1].PostsWithTagCount < tag.PostsWithTagCount {
				t.Fatalf("tags not in descending order at %d", i)
			}
		}
		if !equalStrings(got, want) {
			t.Fatalf("attempt %d: unexpected order %v", attempt, got)
		}
	}
}

func TestTagsForPostOrdersByTitleWithCounts(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	zeta := seedTag(t, gdb, "zeta")
	alpha := seedTag(t, gdb, "alpha")
	seedTag(t, gdb, "unused")

	post := seedPost(t, gdb, "main", alice, rankingBaseTime, zeta, alpha)
	seedPost(t, gdb, "second", alice, rankingBaseTime, zeta)

	tags, err := TagsForPost(gdb, &post)
	if err != nil {
		t.Fatalf("tags for post: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	if tags[0].Title != "alpha" || tags[1].Title != "zeta" {
		t.Fatalf("unexpected order: %s, %s", tags[0].Title, tags[1].Title)
	}
	if tags[0].PostsWithTagCount != 1 || tags[1].PostsWithTagCount != 2 {
		t.Fatalf("unexpected counts: %d, %d", tags[0].PostsWithTagCount, tags[1].PostsWithTagCount)
	}
}

func TestPostBySlug(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	bob := seedAuthor(t, gdb, "bob")
	post := seedPost(t, gdb, "hello", alice, rankingBaseTime, seedTag(t, gdb, "intro"))
	seedLikes(t, gdb, post, alice, bob)

	got, err := PostBySlug(gdb, "hello")
	if err != nil {
		t.Fatalf("post by slug: %v", err)
	}
	if got.ID != post.ID {
		t.Fatalf("unexpected post id %d", got.ID)
	}
	if got.LikesCount != 2 {
		t.Fatalf("expected 2 likes, got %d", got.LikesCount)
	}
	if got.Author.Username != "alice" {
		t.Fatalf("author not preloaded")
	}
	if len(got.Tags) != 1 || got.Tags[0].Title != "intro" {
		t.Fatalf("tags not preloaded: %+v", got.Tags)
	}

	for _, slug := range []string{"nonexistent-slug", ""} {
		if _, err := PostBySlug(gdb, slug); !errors.Is(err, ErrPostNotFound) {
			t.Fatalf("slug %q: expected ErrPostNotFound, got %v", slug, err)
		}
	}
}

func TestTagByTitle(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	tag := seedTag(t, gdb, "travel")
	seedPost(t, gdb, "a", alice, rankingBaseTime, tag)
	seedPost(t, gdb, "b", alice, rankingBaseTime, tag)

	got, err := TagByTitle(gdb, "travel")
	if err != nil {
		t.Fatalf("tag by title: %v", err)
	}
	if got.PostsWithTagCount != 2 {
		t.Fatalf("expected 2 posts, got %d", got.PostsWithTagCount)
	}

	if _, err := TagByTitle(gdb, "missing"); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestCommentsForPostKeepsInsertionOrderAndUsernames(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	bob := seedAuthor(t, gdb, "bob")
	post := seedPost(t, gdb, "discussed", alice, rankingBaseTime)
	other := seedPost(t, gdb, "quiet", alice, rankingBaseTime)

	seedComment(t, gdb, post, alice, "Hi")
	seedComment(t, gdb, other, bob, "elsewhere")
	seedComment(t, gdb, post, bob, "Bye")

	rows, err := CommentsForPost(gdb, &post)
	if err != nil {
		t.Fatalf("comments for post: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(rows))
	}
	if rows[0].Text != "Hi" || rows[0].AuthorUsername != "alice" {
		t.Fatalf("unexpected first comment: %+v", rows[0])
	}
	if rows[1].Text != "Bye" || rows[1].AuthorUsername != "bob" {
		t.Fatalf("unexpected second comment: %+v", rows[1])
	}
	if !rows[0].PublishedAt.Equal(rankingBaseTime) {
		t.Fatalf("unexpected published_at: %v", rows[0].PublishedAt)
	}
}

func TestPostsForTagReturnsNewestFirst(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	travel := seedTag(t, gdb, "travel")
	food := seedTag(t, gdb, "food")

	older := seedPost(t, gdb, "older", alice, rankingBaseTime.Add(-time.Hour), travel)
	seedPost(t, gdb, "newer", alice, rankingBaseTime, travel, food)
	seedPost(t, gdb, "untagged", alice, rankingBaseTime)
	seedComment(t, gdb, older, alice, "first")

	posts, err := PostsForTag(gdb, &travel, 20)
	if err != nil {
		t.Fatalf("posts for tag: %v", err)
	}

	if got := slugsOf(posts); !equalStrings(got, []string{"newer", "older"}) {
		t.Fatalf("unexpected posts %v", got)
	}
	if posts[1].CommentsCount != 1 {
		t.Fatalf("expected comment count 1, got %d", posts[1].CommentsCount)
	}
	if len(posts[0].Tags) != 2 {
		t.Fatalf("expected all tags of the post to be preloaded, got %d", len(posts[0].Tags))
	}
}

func TestLikesFromSoftDeletedAuthorsAreNotCounted(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	bob := seedAuthor(t, gdb, "bob")
	carol := seedAuthor(t, gdb, "carol")

	first := seedPost(t, gdb, "first", alice, rankingBaseTime.Add(-time.Hour))
	second := seedPost(t, gdb, "second", alice, rankingBaseTime.Add(-2*time.Hour))
	seedLikes(t, gdb, first, bob)
	seedLikes(t, gdb, second, carol, alice)

	if err := gdb.Delete(&bob).Error; err != nil {
		t.Fatalf("soft delete author: %v", err)
	}
	if err := gdb.Delete(&carol).Error; err != nil {
		t.Fatalf("soft delete author: %v", err)
	}

	post, err := PostBySlug(gdb, "first")
	if err != nil {
		t.Fatalf("post by slug: %v", err)
	}
	if post.LikesCount != 0 {
		t.Fatalf("expected likes of a soft-deleted author to be ignored, got %d", post.LikesCount)
	}

	posts, err := PopularPosts(gdb, 0)
	if err != nil {
		t.Fatalf("popular posts: %v", err)
	}
	if got := slugsOf(posts); !equalStrings(got, []string{"second", "first"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	if posts[0].LikesCount != 1 {
		t.Fatalf("expected one remaining like, got %d", posts[0].LikesCount)
	}
}

func TestSoftDeletedAuthorKeepsAttribution(t *testing.T) {
	gdb := setupRankingTestDB(t)

	alice := seedAuthor(t, gdb, "alice")
	bob := seedAuthor(t, gdb, "bob")
	post := seedPost(t, gdb, "orphan", alice, rankingBaseTime)
	seedComment(t, gdb, post, bob, "Hi")

	if err := gdb.Delete(&alice).Error; err != nil {
		t.Fatalf("soft delete author: %v", err)
	}
	if err := gdb.Delete(&bob).Error; err != nil {
		t.Fatalf("soft delete author: %v", err)
	}

	loaded, err := PostBySlug(gdb, "orphan")
	if err != nil {
		t.Fatalf("post by slug: %v", err)
	}
	if loaded.Author.Username != "alice" {
		t.Fatalf("expected post author to stay visible, got %q", loaded.Author.Username)
	}

	fresh, err := FreshPosts(gdb, 1)
	if err != nil {
		t.Fatalf("fresh posts: %v", err)
	}
	if len(fresh) != 1 || fresh[0].Author.Username != "alice" {
		t.Fatalf("expected listed post to keep its author, got %+v", fresh)
	}

	rows, err := CommentsForPost(gdb, loaded)
	if err != nil {
		t.Fatalf("comments for post: %v", err)
	}
	if len(rows) != 1 || rows[0].AuthorUsername != "bob" {
		t.Fatalf("expected comment to keep its author, got %+v", rows)
	}
}

package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sensiveblog/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrSeedPasswordRequired 表示未提供演示作者的登录密码
var ErrSeedPasswordRequired = errors.New("seed password is required")

// SeedReport 汇总一次演示数据生成的结果
type SeedReport struct {
	Skipped  bool
	Authors  int
	Tags     int
	Posts    int
	Comments int
	Likes    int
}

type demoPost struct {
	title    string
	slug     string
	text     string
	image    string
	author   string
	tags     []string
	likedBy  []string
	comments []demoComment
}

type demoComment struct {
	author string
	text   string
}

var (
	demoAuthors = []string{"alice", "bob", "carol", "dave"}
	demoTags    = []string{"путешествия", "природа", "город", "еда", "история", "фото"}
	demoPosts   = []demoPost{
		{
			title:   "Осень в Карелии",
			slug:    "osen-v-karelii",
			text:    "Карелия осенью похожа на акварель: озёра отражают рыжие берёзы, а утренний туман долго не уходит с воды. Мы провели неделю на берегу Онежского озера, ловили рыбу и собирали бруснику. В этой заметке рассказываю, как добраться, где остановиться и что обязательно взять с собой, если вы тоже решите поехать.",
			image:   "karelia.jpg",
			author:  "alice",
			tags:    []string{"путешествия", "природа", "фото"},
			likedBy: []string{"bob", "carol", "dave"},
			comments: []demoComment{
				{author: "bob", text: "Очень красиво, хочу туда же!"},
				{author: "carol", text: "А где вы жили?"},
			},
		},
		{
			title:   "Лучшие пекарни Петербурга",
			slug:    "luchshie-pekarni-peterburga",
			text:    "Петербургские пекарни давно перестали быть просто местом, где покупают хлеб. Я обошёл двенадцать заведений за выходные и составил список тех, куда стоит вернуться ради круассанов и ржаного хлеба на закваске.",
			author:  "bob",
			tags:    []string{"город", "еда"},
			likedBy: []string{"alice", "dave"},
			comments: []demoComment{
				{author: "dave", text: "Добавьте пекарню на Рубинштейна."},
			},
		},
		{
			title:   "Прогулка по старой Казани",
			slug:    "progulka-po-staroy-kazani",
			text:    "Старо-Татарская слобода сохранила деревянные дома девятнадцатого века и уютные дворики. Маршрут на три часа с остановками у мечетей и чайных.",
			image:   "kazan.png",
			author:  "carol",
			tags:    []string{"город", "история", "путешествия"},
			likedBy: []string{"alice", "bob"},
		},
		{
			title:   "Как снимать звёздное небо",
			slug:    "kak-snimat-zvyozdnoe-nebo",
			text:    "Для астрофотографии не нужна дорогая техника. Штатив, светосильный объектив и немного терпения: разбираем настройки выдержки, ISO и фокусировки на бесконечность.",
			author:  "alice",
			tags:    []string{"фото", "природа"},
			likedBy: []string{"carol"},
			comments: []demoComment{
				{author: "carol", text: "Спасибо, попробую этим летом."},
				{author: "dave", text: "Какой объектив посоветуете?"},
				{author: "alice", text: "Подойдёт любой с диафрагмой f/2.8 и светлее."},
			},
		},
		{
			title:  "Крепости Псковской земли",
			slug:   "kreposti-pskovskoy-zemli",
			text:   "Изборск, Печоры и Псковский кремль: три дня среди стен, которые помнят Ливонскую войну.",
			author: "dave",
			tags:   []string{"история", "путешествия"},
		},
		{
			title:   "Рецепт калиток",
			slug:    "recept-kalitok",
			text:    "Карельские калитки с пшённой начинкой готовятся быстрее, чем кажется. Главное раскатать тесто очень тонко.",
			author:  "bob",
			tags:    []string{"еда"},
			likedBy: []string{"alice"},
		},
		{
			title:  "Заметки без тегов",
			slug:   "zametki-bez-tegov",
			text:   "Иногда хочется записать мысль, не придумывая для неё рубрику.",
			author: "carol",
		},
	}
)

// SeedDemoContent 生成演示用的作者、标签、文章、评论与点赞。
// 库中已有文章时直接跳过，保证重复执行是幂等的。
func SeedDemoContent(gdb *gorm.DB, password string, now time.Time) (*SeedReport, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return nil, ErrSeedPasswordRequired
	}

	var existing int64
	if err := gdb.Model(&db.Post{}).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return &SeedReport{Skipped: true}, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	report := &SeedReport{}
	err = gdb.Transaction(func(tx *gorm.DB) error {
		authors := make(map[string]db.Author, len(demoAuthors))
		for _, username := range demoAuthors {
			author := db.Author{Username: username}
			if err := tx.Where(db.Author{Username: username}).
				Attrs(db.Author{Password: string(hashed)}).
				FirstOrCreate(&author).Error; err != nil {
				return err
			}
			authors[username] = author
			report.Authors++
		}

		tags := make(map[string]db.Tag, len(demoTags))
		for _, title := range demoTags {
			tag := db.Tag{Title: title}
			if err := tx.Where(db.Tag{Title: title}).FirstOrCreate(&tag).Error; err != nil {
				return err
			}
			tags[title] = tag
			report.Tags++
		}

		for idx, data := range demoPosts {
			author, ok := authors[data.author]
			if !ok {
				return fmt.Errorf("unknown seed author %q", data.author)
			}

			published := now.Add(-time.Duration(idx) * 24 * time.Hour)
			post := db.Post{
				Title:       data.title,
				Slug:        data.slug,
				Text:        data.text,
				Image:       data.image,
				PublishedAt: published,
				AuthorID:    author.ID,
			}
			if err := tx.Create(&post).Error; err != nil {
				return err
			}
			report.Posts++

			if len(data.tags) > 0 {
				postTags := make([]db.Tag, 0, len(data.tags))
				for _, title := range data.tags {
					postTags = append(postTags, tags[title])
				}
				if err := tx.Model(&post).Association("Tags").Append(postTags); err != nil {
					return err
				}
			}

			if len(data.likedBy) > 0 {
				likes := make([]db.Author, 0, len(data.likedBy))
				for _, username := range data.likedBy {
					likes = append(likes, authors[username])
				}
				if err := tx.Model(&post).Association("Likes").Append(likes); err != nil {
					return err
				}
				report.Likes += len(likes)
			}

			for cIdx, c := range data.comments {
				comment := db.Comment{
					Text:        c.text,
					PostID:      post.ID,
					AuthorID:    authors[c.author].ID,
					PublishedAt: published.Add(time.Duration(cIdx+1) * time.Hour),
				}
				if err := tx.Create(&comment).Error; err != nil {
					return err
				}
				report.Comments++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

// Command shop is a terminal storefront shell: it composes the API client,
// the session and cart stores and the view router, and drives them from
// line-oriented commands against a running storefront API (see
// cmd/mockserver for a local one).
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"

	"github.com/fjod/go_shop/internal/admin"
	"github.com/fjod/go_shop/internal/api"
	"github.com/fjod/go_shop/internal/cart"
	"github.com/fjod/go_shop/internal/catalog"
	"github.com/fjod/go_shop/internal/session"
	"github.com/fjod/go_shop/internal/view"
)

type Config struct {
	APIBaseURL     string
	TokenFile      string
	RequestTimeout time.Duration
}

func loadConfig() (*Config, error) {
	tokenFile := os.Getenv("SHOP_TOKEN_FILE")
	if tokenFile == "" {
		path, err := session.DefaultCredentialPath()
		if err != nil {
			return nil, err
		}
		tokenFile = path
	}
	return &Config{
		APIBaseURL:     getEnv("SHOP_API_URL", "http://localhost:8001"),
		TokenFile:      tokenFile,
		RequestTimeout: 30 * time.Second,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

type shell struct {
	timeout time.Duration
	session *session.Store
	cart    *cart.Store
	catalog *catalog.Service
	admin   *admin.Service
	router  *view.Router
	client  *api.Client
	badge   atomic.Int64
}

func main() {
	_ = godotenv.Load()
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	client := api.New(cfg.APIBaseURL, api.WithTimeout(cfg.RequestTimeout))
	sess := session.NewStore(client, session.NewFileCredentials(cfg.TokenFile))
	cartStore := cart.NewStore(client, sess)

	sh := &shell{
		timeout: cfg.RequestTimeout,
		session: sess,
		cart:    cartStore,
		catalog: catalog.NewService(client),
		admin:   admin.NewService(client, sess),
		router:  view.NewRouter(sess),
		client:  client,
	}
	cartStore.Subscribe(func() {
		sh.badge.Store(int64(cartStore.ItemCount()))
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	sess.Restore(ctx)
	cancel()

	if user, ok := sess.Current(); ok {
		fmt.Printf("Welcome back, %s\n", user.Name)
	}
	fmt.Println(`Type "help" for commands.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] cart:%d > ", sh.router.Current(), sh.badge.Load())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		sh.run(strings.Fields(line))
	}
}

func (sh *shell) run(args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), sh.timeout)
	defer cancel()

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "help":
		printHelp()
	case "login":
		err = sh.login(ctx, rest)
	case "register":
		err = sh.register(ctx, rest)
	case "logout":
		sh.session.Logout()
		fmt.Println("Logged out.")
	case "whoami":
		sh.whoami()
	case "products":
		err = sh.products(ctx, rest)
	case "categories":
		err = sh.categories(ctx)
	case "add":
		err = sh.add(ctx, rest)
	case "cart":
		sh.showCart()
	case "qty":
		err = sh.setQuantity(ctx, rest)
	case "rm":
		err = sh.remove(ctx, rest)
	case "clear":
		err = sh.cart.Clear(ctx)
	case "checkout":
		err = sh.checkout(ctx)
	case "orders":
		err = sh.orders(ctx)
	case "dashboard":
		err = sh.dashboard(ctx)
	case "view":
		sh.goView(rest)
	default:
		fmt.Printf("unknown command %q\n", cmd)
	}
	if err != nil {
		fmt.Printf("error: %s\n", userMessage(err))
	}
}

// userMessage surfaces the server's detail text where one exists, and the
// fixed local message for guard failures.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func printHelp() {
	fmt.Print(`commands:
  login <email> <password>
  register <name> <email> <password>
  logout | whoami
  products [search...] | categories
  add <product-id> [qty]
  cart | qty <line-id> <n> | rm <line-id> | clear | checkout
  orders | dashboard
  view <home|products|cart|login|orders|admin>
  quit
`)
}

func (sh *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <email> <password>")
	}
	if err := sh.session.Login(ctx, args[0], args[1]); err != nil {
		return err
	}
	user, _ := sh.session.Current()
	fmt.Printf("Hi, %s\n", user.Name)
	return nil
}

func (sh *shell) register(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: register <name> <email> <password>")
	}
	return sh.session.Register(ctx, args[0], args[1], args[2])
}

func (sh *shell) whoami() {
	user, ok := sh.session.Current()
	if !ok {
		fmt.Println("anonymous")
		return
	}
	fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
}

func (sh *shell) products(ctx context.Context, args []string) error {
	products, err := sh.catalog.Products(ctx, catalog.Filter{Search: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("%s  $%s  stock:%d  %s\n", p.ID, p.Price.StringFixed(2), p.Stock, p.Name)
	}
	return nil
}

func (sh *shell) categories(ctx context.Context) error {
	categories, err := sh.catalog.Categories(ctx)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(categories, ", "))
	return nil
}

func (sh *shell) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: add <product-id> [qty]")
	}
	qty := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad quantity %q", args[1])
		}
		qty = n
	}
	return sh.cart.Add(ctx, args[0], qty)
}

func (sh *shell) showCart() {
	lines := sh.cart.Lines()
	if len(lines) == 0 {
		fmt.Println("Your cart is empty")
		return
	}
	for _, l := range lines {
		fmt.Printf("%s  %dx %-24s $%s\n", l.ID, l.Quantity, l.Product.Name, l.Total().StringFixed(2))
	}
	fmt.Printf("Total: $%s\n", sh.cart.Subtotal().StringFixed(2))
}

func (sh *shell) setQuantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: qty <line-id> <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad quantity %q", args[1])
	}
	return sh.cart.SetQuantity(ctx, args[0], n)
}

func (sh *shell) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rm <line-id>")
	}
	return sh.cart.Remove(ctx, args[0])
}

func (sh *shell) checkout(ctx context.Context) error {
	orderID, err := sh.cart.Checkout(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Order placed! Order ID: %s\n", orderID)
	return nil
}

func (sh *shell) orders(ctx context.Context) error {
	orders, err := sh.client.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet.")
		return nil
	}
	for _, o := range orders {
		fmt.Printf("%s  $%s  %s  %s\n", o.ID, o.TotalAmount.StringFixed(2), o.Status, o.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func (sh *shell) dashboard(ctx context.Context) error {
	stats, err := sh.admin.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("users:%d products:%d orders:%d (pending %d) revenue:$%s\n",
		stats.TotalUsers, stats.TotalProducts, stats.TotalOrders,
		stats.PendingOrders, stats.TotalRevenue.StringFixed(2))
	for _, p := range stats.LowStockProducts {
		fmt.Printf("low stock: %s (%d left)\n", p.Name, p.Stock)
	}
	return nil
}

func (sh *shell) goView(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: view <name>")
		return
	}
	requested, ok := view.Parse(args[0])
	if !ok {
		fmt.Printf("unknown view %q\n", args[0])
		return
	}
	entered := sh.router.Go(requested)
	if entered != requested {
		fmt.Printf("redirected to %s\n", entered)
	}
}

package app

// Command はquicknotesバイナリの起動モードを表す。
type Command string

const (
	// CommandServe はメモAPIサーバーを起動する（デフォルト）。
	CommandServe Command = "serve"
	// CommandWorker は期限切れのトークン失効レコードを定期的に削除するワーカーを起動する。
	CommandWorker Command = "worker"
	// CommandMigrate はPostgreSQLのスキーマ適用、またはMongoDBのインデックス作成を行う。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のAPIサーバーの/healthを叩いて終了する。
	// curlを持たないdistrolessイメージのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

// commands は引数名から起動モードへの対応表。
var commands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandWorker):      CommandWorker,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand はos.Args[1:]の先頭をサブコマンドとして解釈する。
// 2番目以降の引数は無視する。空または未知の名前はCommandServeとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := commands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}

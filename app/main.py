import os


def main():
    pass
=== FILE END ===
Some prose between files.